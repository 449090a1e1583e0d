package datagen_test

import (
	"bytes"
	"encoding/csv"
	"io/ioutil"
	"os"
	"path"
	"strconv"
	"testing"

	"github.com/mirlab/InlinerTester/datagen"
)

func readDecisions(t *testing.T, csvPath string) [][]string {
	t.Helper()
	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestGenerateSkewed(t *testing.T) {
	dir := t.TempDir()
	if err := datagen.Generate("skewed", dir, 10); err != nil {
		t.Fatal(err)
	}
	rows := readDecisions(t, path.Join(dir, "skewed_decisions.csv"))
	// header + 10 funcs x 5 sizes x 3 opt levels
	if len(rows) != 1+150 {
		t.Fatalf("rows=%v", len(rows))
	}
	if rows[0][0] != "func_name" || rows[0][3] != "opt_level" {
		t.Fatalf("header=%v", rows[0])
	}

	seen := make(map[string]struct{})
	for _, row := range rows[1:] {
		if _, ok := seen[row[0]]; ok {
			t.Fatalf("duplicated func_name %v", row[0])
		}
		seen[row[0]] = struct{}{}

		price, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			t.Fatal(err)
		}
		if price != 1000 && price != 10 {
			t.Fatalf("price=%v", price)
		}
		irCount, _ := strconv.Atoi(row[2])
		inlined, _ := strconv.Atoi(row[4])
		adjusted, _ := strconv.Atoi(row[6])
		want := 0
		if irCount < adjusted {
			want = 1
		}
		if inlined != want {
			t.Fatalf("row=%v", row)
		}
	}
}

func TestGenerateHotFunctionsUseScaledBudget(t *testing.T) {
	dir := t.TempDir()
	if err := datagen.Generate("skewed", dir, 2); err != nil {
		t.Fatal(err)
	}
	rows := readDecisions(t, path.Join(dir, "skewed_decisions.csv"))
	for _, row := range rows[1:] {
		base, _ := strconv.Atoi(row[5])
		adjusted, _ := strconv.Atoi(row[6])
		price, _ := strconv.ParseFloat(row[1], 64)
		if price == 1000 && adjusted != base*5 {
			// lambda scale clamps at 5.0
			t.Fatalf("row=%v", row)
		}
		if price == 10 {
			// base*0.1 floors at the minimum budget of 5
			want := base / 10
			if want < 5 {
				want = 5
			}
			if adjusted != want {
				t.Fatalf("row=%v", row)
			}
		}
	}
}

func TestGeneratePerturbedIsReproducible(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()
	if err := datagen.Generate("perturbed", dir1, 20); err != nil {
		t.Fatal(err)
	}
	if err := datagen.Generate("perturbed", dir2, 20); err != nil {
		t.Fatal(err)
	}
	c1, err := ioutil.ReadFile(path.Join(dir1, "perturbed_decisions.csv"))
	if err != nil {
		t.Fatal(err)
	}
	c2, err := ioutil.ReadFile(path.Join(dir2, "perturbed_decisions.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(c1, c2) {
		t.Fatal("perturbed generation is not reproducible")
	}
}

func TestGenerateAllConditions(t *testing.T) {
	dir := t.TempDir()
	if err := datagen.Generate("all", dir, 4); err != nil {
		t.Fatal(err)
	}
	for _, cond := range []string{"baseline", "uniform", "skewed", "perturbed"} {
		if _, err := os.Stat(path.Join(dir, cond+"_decisions.csv")); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGenerateUnknownCondition(t *testing.T) {
	if err := datagen.Generate("inverted", t.TempDir(), 4); err == nil {
		t.Fatal("expected error")
	}
}
