package numtest

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path"
	"sort"
	"strings"
)

func banner(title string) string {
	line := strings.Repeat("=", 60)
	return fmt.Sprintf("%v\n%v\n%v\n", line, title, line)
}

func passMark(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

// PrintAnalysis renders the whole battery as console text. Presentation
// only: every number comes from the result structs.
func PrintAnalysis(a *Analysis) {
	skewed := a.Data[CondSkewed]

	fmt.Print(banner("Test 1: Spearman Correlation (Skewed Condition, All Levels)"))
	c := a.Correlation
	fmt.Printf("  rho (correlation): %.4f\n", c.Rho)
	fmt.Printf("  95%% CI:            [%.4f, %.4f]\n", c.CILow, c.CIHigh)
	fmt.Printf("  p-value:           %.2e\n", c.P)
	fmt.Printf("  n:                 %v\n", c.N)
	fmt.Printf("  Result:            %v\n\n", passMark(c.Pass))

	fmt.Print(banner("Test 2: Cohen's d (Hot vs Cold Shadow Price)"))
	e := a.EffectSize
	fmt.Printf("  Hot  (price > %.1f) inlining rate:  %.1f%% (n=%v)\n", e.MedianPrice, e.HotRate, e.NHot)
	fmt.Printf("  Cold (price <= %.1f) inlining rate: %.1f%% (n=%v)\n", e.MedianPrice, e.ColdRate, e.NCold)
	fmt.Printf("  Cohen's d:         %.4f\n", e.D)
	fmt.Printf("  Result:            %v\n\n", passMark(e.Pass))

	fmt.Print(banner("Test 3: McNemar Test (Skewed vs Perturbed)"))
	m := a.Agreement
	fmt.Printf("  Matched pairs:             %v\n", m.Matched)
	fmt.Printf("  Both inlined:              %v\n", m.Table[0][0])
	fmt.Printf("  Skewed yes, perturbed no:  %v\n", m.Table[0][1])
	fmt.Printf("  Skewed no, perturbed yes:  %v\n", m.Table[1][0])
	fmt.Printf("  Neither inlined:           %v\n", m.Table[1][1])
	fmt.Printf("  Agreement rate:            %.1f%% (discordant=%v)\n", m.AgreementRate*100, m.Discordant)
	fmt.Printf("  McNemar statistic:         %.4f\n", m.Stat)
	fmt.Printf("  McNemar p-value:           %.2e\n", m.P)
	fmt.Printf("  Assessment:                %v\n", m.Reason)
	fmt.Printf("  Result:                    %v\n\n", passMark(m.Pass))

	fmt.Print(banner("Analysis 4: Stratified by Optimization Level (Skewed)"))
	if len(a.OptStrat.Strata) == 0 {
		fmt.Printf("  SKIP: opt_level column not found (legacy data)\n\n")
	} else {
		for _, level := range sortedLevels(a.OptStrat.Strata) {
			s := a.OptStrat.Strata[level]
			fmt.Printf("  O%v (thresh=%.0f): n=%v, inline rate=%.1f%%\n", s.Level, s.Threshold, s.N, s.InlineRate)
			fmt.Printf("    rho=%.4f, p=%.2e, 95%% CI=[%.3f, %.3f]\n", s.Rho, s.P, s.CILow, s.CIHigh)
		}
		if a.OptStrat.Assessment != "" {
			fmt.Printf("\n  Cross-level rho range: %.4f\n", a.OptStrat.RhoRange)
			fmt.Printf("  Assessment: %v\n", a.OptStrat.Assessment)
		}
		fmt.Println()
	}

	fmt.Print(banner("Analysis 5: Stratified by Function Size (Skewed)"))
	for _, size := range sortedSizes(a.SizeStrat.Strata) {
		s := a.SizeStrat.Strata[size]
		fmt.Printf("  %v IR (n=%v):\n", s.Size, s.N)
		fmt.Printf("    Overall: %.1f%%  |  Hot: %.1f%%  Cold: %.1f%%\n", s.InlineRate, s.HotRate, s.ColdRate)
		fmt.Printf("    rho=%.3f, p=%.2e  |  %v\n", s.Rho, s.P, s.Class)
	}
	if len(a.SizeStrat.BoundarySizes) > 0 {
		fmt.Printf("\n  Decision boundary sizes: %v IR instructions\n\n", a.SizeStrat.BoundarySizes)
	} else {
		fmt.Printf("\n  No clear decision boundary found\n\n")
	}

	if a.Surface.Fitted {
		fmt.Printf("[numtest] decision surface fit over %v records: bias=%.3f price=%.3f size=%.3f (loss=%.4f)\n\n",
			a.Surface.N, a.Surface.Bias, a.Surface.PriceWeight, a.Surface.SizeWeight, a.Surface.Loss)
	}

	fmt.Print(banner("VERDICT"))
	fmt.Printf("\n  %v: %v/3 tests pass.\n", a.Verdict, a.NumPassed)
	fmt.Printf("  Skewed condition: n=%v, inline rate=%.1f%%\n\n", skewed.Len(), skewed.InlineRate())
}

// GenNUMTestReport writes report.md plus its chart PNGs into the report
// directory, in the same markdown-with-pictures shape as the other reports
// of this repo.
func GenNUMTestReport(opt Option, a *Analysis) error {
	md := bytes.Buffer{}
	md.WriteString(fmt.Sprintf("# NUM Hypothesis Report: %v\n\n", a.Verdict))

	md.WriteString("## Core Tests\n")
	md.WriteString("\n| Test | Statistic | p-value | n | Result |\n")
	md.WriteString("| ---- | ---- | ---- | ---- | ---- |\n")
	md.WriteString(fmt.Sprintf("| Spearman rho | %.4f [%.3f, %.3f] | %.2e | %v | %v |\n",
		a.Correlation.Rho, a.Correlation.CILow, a.Correlation.CIHigh, a.Correlation.P, a.Correlation.N, passMark(a.Correlation.Pass)))
	md.WriteString(fmt.Sprintf("| Cohen's d | %.4f | - | %v | %v |\n",
		a.EffectSize.D, a.EffectSize.NHot+a.EffectSize.NCold, passMark(a.EffectSize.Pass)))
	md.WriteString(fmt.Sprintf("| McNemar | %.4f | %.2e | %v | %v |\n",
		a.Agreement.Stat, a.Agreement.P, a.Agreement.Matched, passMark(a.Agreement.Pass)))
	md.WriteString(fmt.Sprintf("\nMcNemar assessment: %v\n\n", a.Agreement.Reason))

	scatterPath, err := DrawSignalScatter(a.Data[CondSkewed], a.Correlation, opt.ReportDir)
	if err != nil {
		return err
	}
	md.WriteString(fmt.Sprintf("![pic](%v)\n", scatterPath))
	hotColdPath, err := DrawHotColdBars(a.EffectSize, opt.ReportDir)
	if err != nil {
		return err
	}
	md.WriteString(fmt.Sprintf("![pic](%v)\n", hotColdPath))
	condPath, err := DrawConditionRates(a.Data, opt.ReportDir)
	if err != nil {
		return err
	}
	md.WriteString(fmt.Sprintf("![pic](%v)\n\n", condPath))

	md.WriteString("## Stratified by Optimization Level\n")
	if len(a.OptStrat.Strata) == 0 {
		md.WriteString("\nSkipped: no opt_level field in the skewed condition.\n\n")
	} else {
		md.WriteString("\n| Level | Thresh | n | Rate | rho | p | 95% CI | Sig |\n")
		md.WriteString("| ---- | ---- | ---- | ---- | ---- | ---- | ---- | ---- |\n")
		for _, level := range sortedLevels(a.OptStrat.Strata) {
			s := a.OptStrat.Strata[level]
			md.WriteString(fmt.Sprintf("| O%v | %.0f | %v | %.1f%% | %.4f | %.2e | [%.3f, %.3f] | %v |\n",
				s.Level, s.Threshold, s.N, s.InlineRate, s.Rho, s.P, s.CILow, s.CIHigh, passMark(s.Significant)))
		}
		md.WriteString(fmt.Sprintf("\nCross-level rho range %.4f: %v\n\n", a.OptStrat.RhoRange, a.OptStrat.Assessment))
		rhoPath, err := DrawRhoByOptLevel(a.OptStrat, opt.ReportDir)
		if err != nil {
			return err
		}
		md.WriteString(fmt.Sprintf("![pic](%v)\n\n", rhoPath))
	}

	md.WriteString("## Stratified by Function Size\n")
	md.WriteString("\n| Size | n | Rate | Hot | Cold | rho | p | Class |\n")
	md.WriteString("| ---- | ---- | ---- | ---- | ---- | ---- | ---- | ---- |\n")
	for _, size := range sortedSizes(a.SizeStrat.Strata) {
		s := a.SizeStrat.Strata[size]
		md.WriteString(fmt.Sprintf("| %v | %v | %.1f%% | %.1f%% | %.1f%% | %.3f | %.2e | %v |\n",
			s.Size, s.N, s.InlineRate, s.HotRate, s.ColdRate, s.Rho, s.P, s.Class))
	}
	if len(a.SizeStrat.BoundarySizes) > 0 {
		md.WriteString(fmt.Sprintf("\nDecision boundary sizes: %v IR instructions.\n\n", a.SizeStrat.BoundarySizes))
	} else {
		md.WriteString("\nNo clear decision boundary found.\n\n")
	}
	sizePath, err := DrawSizeRates(a.SizeStrat, opt.ReportDir)
	if err != nil {
		return err
	}
	md.WriteString(fmt.Sprintf("![pic](%v)\n", sizePath))
	heatPath, err := DrawInlineHeatMap(a.Joint, opt.ReportDir)
	if err != nil {
		return err
	}
	md.WriteString(fmt.Sprintf("![pic](%v)\n\n", heatPath))

	if a.Surface.Fitted {
		md.WriteString("## Supplementary: Decision Surface Fit\n")
		md.WriteString(fmt.Sprintf("\ninlined ~ %.3f + %.3f*(lambda/1000) + %.3f*(ir_count/1000), loss=%.4f over n=%v\n\n",
			a.Surface.Bias, a.Surface.PriceWeight, a.Surface.SizeWeight, a.Surface.Loss, a.Surface.N))
	}

	md.WriteString(fmt.Sprintf("## Verdict\n\n%v: %v/3 core tests pass.\n", a.Verdict, a.NumPassed))
	return ioutil.WriteFile(path.Join(opt.ReportDir, "report.md"), md.Bytes(), 0666)
}

func sortedLevels(strata map[int]OptStratum) []int {
	levels := make([]int, 0, len(strata))
	for l := range strata {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}

func sortedSizes(strata map[int]SizeStratum) []int {
	sizes := make([]int, 0, len(strata))
	for s := range strata {
		sizes = append(sizes, s)
	}
	sort.Ints(sizes)
	return sizes
}
