package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"golens/adapters/excel"
	"golens/adapters/model"
	"golens/adapters/store"
	"golens/api"
	"golens/app"
	"golens/domain/core"
	"golens/domain/explain"
	"golens/internal"
	"golens/internal/config"
	"golens/ports"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger().Named("api")
	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		os.Exit(1)
	}
	if cfg.Data.DatasetFile == "" {
		logger.Error("DATASET_FILE is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := excel.NewDataReader(logger)
	dataset, err := reader.ReadDataset(cfg.Data.DatasetFile)
	if err != nil {
		logger.Error("loading dataset: %v", err)
		os.Exit(1)
	}
	features, labels, err := excel.SplitLabelColumn(dataset, cfg.Data.LabelColumn)
	if err != nil {
		logger.Error("splitting label column: %v", err)
		os.Exit(1)
	}

	mode := explain.Mode(cfg.Data.Mode)
	modelFn, classNames, err := buildReferenceModel(mode, features.Rows, labels)
	if err != nil {
		logger.Error("building reference model: %v", err)
		os.Exit(1)
	}

	explainer, err := app.NewExplainer(app.DomainTabular, "")
	if err != nil {
		logger.Error("resolving explainer: %v", err)
		os.Exit(1)
	}
	interpreter := app.NewModelInterpreter(explainer, logger)
	err = interpreter.Build(ctx, ports.BuildParams{
		Training:       features.Rows,
		TrainingLabels: labels,
		Mode:           mode,
		Model:          modelFn,
		FeatureNames:   features.FeatureNames,
		Config: ports.ExplainerConfig{
			NumBins: cfg.Explain.NumBins,
			Seed:    cfg.Explain.Seed,
		},
	}, classNames)
	if err != nil {
		logger.Error("building explainer: %v", err)
		os.Exit(1)
	}

	if err := persistExplainer(ctx, cfg, explainer, logger); err != nil {
		logger.Warn("persisting explainer: %v", err)
	}

	server := api.NewServer(explainer, interpreter, features.Rows, logger)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Handler(),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening on :%s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := group.Wait(); err != nil {
		logger.Error("server: %v", err)
		os.Exit(1)
	}
}

// buildReferenceModel wires the bundled k-NN model over the dataset so the
// API has something real to explain out of the box.
func buildReferenceModel(mode explain.Mode, rows [][]float64, labels []float64) (ports.ModelFn, []string, error) {
	if mode == explain.ModeRegression {
		fn, err := model.KNNRegressor(rows, labels, 5)
		return fn, nil, err
	}

	numClasses := 0
	for _, l := range labels {
		if int(l) >= numClasses {
			numClasses = int(l) + 1
		}
	}
	fn, err := model.KNNClassifier(rows, labels, numClasses, 5)
	if err != nil {
		return nil, nil, err
	}
	classNames := make([]string, numClasses)
	for i := range classNames {
		classNames[i] = "class_" + explain.CategoryKey(float64(i))
	}
	return fn, classNames, nil
}

// persistExplainer saves the freshly built explainer into the configured
// blob store so other processes can load it.
func persistExplainer(ctx context.Context, cfg *config.Config, explainer ports.ExplainerPort, logger *internal.Logger) error {
	var blobStore ports.ExplainerStorePort
	if cfg.Store.DatabaseURL != "" {
		pg, err := store.OpenPostgresStore(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
		blobStore = pg
	} else {
		fs, err := store.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return err
		}
		blobStore = fs
	}

	var buf bytes.Buffer
	if err := explainer.Save(&buf); err != nil {
		return err
	}
	id := core.ExplainerID(core.NewID())
	if err := blobStore.Put(ctx, id, cfg.Data.DatasetFile, buf.Bytes()); err != nil {
		return err
	}
	logger.Info("explainer persisted as %s (%d bytes)", id, buf.Len())
	return nil
}
