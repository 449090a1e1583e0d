package numtest

import (
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/go-gota/gota/dataframe"
	"github.com/mirlab/InlinerTester/mirdb"
	"github.com/pingcap/errors"
)

var requiredColumns = []string{"func_name", "ir_count", "shadow_price", "inlined", "threshold_baseline"}

// LoadDatasets loads every condition from the configured source. A missing
// condition resource is fatal; no partial dataset map is ever returned.
func LoadDatasets(opt Option) (map[Condition]*DecisionDataset, error) {
	switch opt.Source {
	case SourceCSV:
		return loadDatasetsFromCSV(opt.ResultsDir)
	case SourceMySQL:
		return loadDatasetsFromDB(opt)
	}
	return nil, errors.Errorf("unknown source=%v", opt.Source)
}

func loadDatasetsFromCSV(dir string) (map[Condition]*DecisionDataset, error) {
	data := make(map[Condition]*DecisionDataset, len(AllConditions))
	fmt.Printf("[numtest] loading decision logs from %v\n", dir)
	for _, cond := range AllConditions {
		ds, err := LoadConditionCSV(dir, cond)
		if err != nil {
			return nil, err
		}
		data[cond] = ds
		fmt.Printf("[numtest]   loaded %v: %v rows, opt levels=%v\n", cond, ds.Len(), ds.HasOptLevel())
	}
	return data, nil
}

// LoadConditionCSV reads one <condition>_decisions.csv into a typed dataset.
func LoadConditionCSV(dir string, cond Condition) (*DecisionDataset, error) {
	csvPath := path.Join(dir, fmt.Sprintf("%v_decisions.csv", cond))
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, errors.Errorf("required decision log %v is missing: %v", csvPath, err)
	}
	defer f.Close()
	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return nil, errors.Trace(df.Err)
	}
	return datasetFromFrame(cond, df)
}

// datasetFromFrame converts a loaded frame into typed records. The frame is
// only a transport: everything downstream works on DecisionRecord values.
func datasetFromFrame(cond Condition, df dataframe.DataFrame) (*DecisionDataset, error) {
	names := make(map[string]struct{}, len(df.Names()))
	for _, n := range df.Names() {
		names[n] = struct{}{}
	}
	for _, col := range requiredColumns {
		if _, ok := names[col]; !ok {
			return nil, errors.Errorf("condition %v: required column %v is missing", cond, col)
		}
	}
	_, hasOptLevel := names["opt_level"]

	funcNames := df.Col("func_name").Records()
	irCounts := df.Col("ir_count").Float()
	prices := df.Col("shadow_price").Float()
	inlined := df.Col("inlined").Float()
	thresholds := df.Col("threshold_baseline").Float()
	var optLevels []float64
	if hasOptLevel {
		optLevels = df.Col("opt_level").Float()
	}

	records := make([]DecisionRecord, df.Nrow())
	for i := range records {
		records[i] = DecisionRecord{
			FuncName:          funcNames[i],
			IRCount:           int(irCounts[i]),
			ShadowPrice:       prices[i],
			Inlined:           inlined[i] != 0,
			ThresholdBaseline: thresholds[i],
		}
		if hasOptLevel {
			records[i].OptLevel = int(optLevels[i])
		}
	}
	return NewDecisionDataset(cond, hasOptLevel, records)
}

func loadDatasetsFromDB(opt Option) (map[Condition]*DecisionDataset, error) {
	if len(opt.Instances) == 0 {
		return nil, errors.Errorf("source=mysql needs at least one instance")
	}
	instances, err := mirdb.ConnectToInstances(opt.Instances)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() {
		for _, ins := range instances {
			ins.Close()
		}
	}()

	// condition fetches fan out across the configured instances
	var wg sync.WaitGroup
	datasets := make([]*DecisionDataset, len(AllConditions))
	condErrs := make([]error, len(AllConditions))
	for i, cond := range AllConditions {
		wg.Add(1)
		go func(i int, cond Condition) {
			defer wg.Done()
			ins := instances[i%len(instances)]
			rows, err := mirdb.FetchDecisionRows(ins, opt.DB, fmt.Sprintf("%v_decisions", cond))
			if err != nil {
				condErrs[i] = errors.Errorf("required decision table for %v is missing: %v", cond, err)
				return
			}
			datasets[i], condErrs[i] = datasetFromRows(cond, rows)
		}(i, cond)
	}
	wg.Wait()

	data := make(map[Condition]*DecisionDataset, len(AllConditions))
	for i, cond := range AllConditions {
		if condErrs[i] != nil {
			return nil, condErrs[i]
		}
		data[cond] = datasets[i]
	}
	fmt.Printf("[numtest] fetched %v decision rows from %v\n", mirdb.FetchedRows(), opt.DB)
	return data, nil
}

func datasetFromRows(cond Condition, rows []mirdb.DecisionRow) (*DecisionDataset, error) {
	hasOptLevel := len(rows) > 0 && rows[0].HasOptLevel
	records := make([]DecisionRecord, len(rows))
	for i, r := range rows {
		records[i] = DecisionRecord{
			FuncName:          r.FuncName,
			IRCount:           r.IRCount,
			OptLevel:          r.OptLevel,
			ShadowPrice:       r.ShadowPrice,
			Inlined:           r.Inlined,
			ThresholdBaseline: r.ThresholdBaseline,
		}
	}
	return NewDecisionDataset(cond, hasOptLevel, records)
}
