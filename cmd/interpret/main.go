// Command interpret runs a batch interpretation over a dataset file and
// writes the aggregated feature-importance report to stdout (markdown) and
// optionally to an xlsx workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"golens/adapters/excel"
	"golens/adapters/model"
	"golens/adapters/report"
	"golens/app"
	"golens/domain/explain"
	"golens/internal"
	"golens/ports"
)

func main() {
	var (
		datasetFile = flag.String("dataset", "", "path to the xlsx/csv dataset (required)")
		labelColumn = flag.String("label", "label", "name of the label/target column")
		mode        = flag.String("mode", "classification", "classification or regression")
		numFeatures = flag.Int("k", 10, "feature conditions kept per explanation")
		numSamples  = flag.Int("samples", 0, "cap on interpreted samples (0 = all)")
		numBins     = flag.Int("bins", 4, "discretizer bins per continuous feature")
		seed        = flag.Int64("seed", 1, "perturbation sampling seed")
		outFile     = flag.String("out", "", "optional xlsx report output path")
	)
	flag.Parse()
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger().Named("interpret-cli")
	if *datasetFile == "" {
		fmt.Fprintln(os.Stderr, "usage: interpret -dataset data.xlsx [-label label] [-mode classification]")
		os.Exit(2)
	}
	if err := run(*datasetFile, *labelColumn, *mode, *numFeatures, *numSamples, *numBins, *seed, *outFile, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(datasetFile, labelColumn, modeName string, numFeatures, numSamples, numBins int, seed int64, outFile string, logger *internal.Logger) error {
	ctx := context.Background()

	dataset, err := excel.NewDataReader(logger).ReadDataset(datasetFile)
	if err != nil {
		return err
	}
	features, labels, err := excel.SplitLabelColumn(dataset, labelColumn)
	if err != nil {
		return err
	}

	mode := explain.Mode(modeName)
	var (
		modelFn    ports.ModelFn
		classNames []string
	)
	if mode == explain.ModeRegression {
		modelFn, err = model.KNNRegressor(features.Rows, labels, 5)
	} else {
		numClasses := 0
		for _, l := range labels {
			if int(l) >= numClasses {
				numClasses = int(l) + 1
			}
		}
		modelFn, err = model.KNNClassifier(features.Rows, labels, numClasses, 5)
		classNames = make([]string, numClasses)
		for i := range classNames {
			classNames[i] = "class_" + explain.CategoryKey(float64(i))
		}
	}
	if err != nil {
		return err
	}

	explainer, err := app.NewExplainer(app.DomainTabular, "")
	if err != nil {
		return err
	}
	interpreter := app.NewModelInterpreter(explainer, logger)
	err = interpreter.Build(ctx, ports.BuildParams{
		Training:       features.Rows,
		TrainingLabels: labels,
		Mode:           mode,
		Model:          modelFn,
		FeatureNames:   features.FeatureNames,
		Config:         ports.ExplainerConfig{NumBins: numBins, Seed: seed},
	}, classNames)
	if err != nil {
		return err
	}

	samples := features.Rows
	if numSamples > 0 && numSamples < len(samples) {
		samples = samples[:numSamples]
	}
	stats, processed, err := interpreter.Interpret(ctx, samples, explain.StatsAverageRanking, numFeatures)
	if err != nil {
		return err
	}
	logger.Info("interpreted %d/%d samples", processed, len(samples))

	fmt.Print(report.NewRenderer(0).Markdown(stats))
	if outFile != "" {
		if err := excel.NewReportWriter().Write(stats, outFile); err != nil {
			return err
		}
		logger.Info("report written to %s", outFile)
	}
	return nil
}
