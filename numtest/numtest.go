package numtest

import (
	"fmt"
	"io/ioutil"

	"github.com/BurntSushi/toml"
	"github.com/mirlab/InlinerTester/mirdb"
	"github.com/pingcap/errors"
)

// Decision data sources.
const (
	SourceCSV   = "csv"
	SourceMySQL = "mysql"
)

type Option struct {
	ResultsDir string         `toml:"results-dir"`
	ReportDir  string         `toml:"report-dir"`
	Source     string         `toml:"source"`
	DB         string         `toml:"db"`
	Instances  []mirdb.Option `toml:"instances"`
}

// DecodeOption decodes option content.
func DecodeOption(content string) (Option, error) {
	var opt Option
	if _, err := toml.Decode(content, &opt); err != nil {
		return Option{}, errors.Trace(err)
	}
	if opt.Source == "" {
		opt.Source = SourceCSV
	}
	if opt.Source != SourceCSV && opt.Source != SourceMySQL {
		return Option{}, errors.Errorf("unknown source=%v", opt.Source)
	}
	if opt.ResultsDir == "" {
		opt.ResultsDir = "./results"
	}
	if opt.ReportDir == "" {
		opt.ReportDir = opt.ResultsDir
	}
	return opt, nil
}

// Analysis is everything the test battery produces for one run.
type Analysis struct {
	Data        map[Condition]*DecisionDataset
	Correlation CorrelationResult
	EffectSize  EffectSizeResult
	Agreement   AgreementResult
	OptStrat    OptStratification
	SizeStrat   SizeStratification
	Joint       JointDistribution
	Surface     SurfaceFit
	NumPassed   int
	Verdict     Verdict
}

// RunAnalysis executes the whole battery over already-loaded datasets.
// Pure except for the supplementary surface fit, whose failure is absorbed
// into an unfitted zero value.
func RunAnalysis(data map[Condition]*DecisionDataset, th Thresholds) *Analysis {
	skewed := data[CondSkewed]
	perturbed := data[CondPerturbed]

	a := &Analysis{Data: data}
	a.Correlation = RunCorrelationTest(skewed, th)
	a.EffectSize = RunEffectSizeTest(skewed, th)
	a.Agreement = RunAgreementTest(skewed, perturbed, th)
	a.OptStrat = StratifyByOptLevel(skewed, th)
	a.SizeStrat = StratifyBySize(skewed, th)
	a.Joint = JointInlineDistribution(skewed)
	if fit, err := FitDecisionSurface(skewed); err == nil {
		a.Surface = fit
	}

	for _, ok := range []bool{a.Correlation.Pass, a.EffectSize.Pass, a.Agreement.Pass} {
		if ok {
			a.NumPassed++
		}
	}
	a.Verdict = AggregateVerdict(a.Correlation.Pass, a.EffectSize.Pass, a.Agreement.Pass)
	return a
}

// RunNUMTestWithConfig loads the datasets, runs the battery and renders the
// report. It returns an error when a required resource is missing or when
// the verdict disproves the hypothesis, so the process exits non-zero in
// both cases.
func RunNUMTestWithConfig(confPath string) error {
	confContent, err := ioutil.ReadFile(confPath)
	if err != nil {
		return errors.Trace(err)
	}
	opt, err := DecodeOption(string(confContent))
	if err != nil {
		return err
	}

	data, err := LoadDatasets(opt)
	if err != nil {
		return err
	}

	analysis := RunAnalysis(data, DefaultThresholds())
	PrintAnalysis(analysis)
	if err := GenNUMTestReport(opt, analysis); err != nil {
		fmt.Printf("[numtest] WARNING: could not generate report: %v\n", err)
	}

	if analysis.Verdict == VerdictDisproves {
		return errors.Errorf("verdict %v: %v/3 core tests passed", analysis.Verdict, analysis.NumPassed)
	}
	return nil
}
