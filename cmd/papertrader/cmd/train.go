package cmd

import (
	"fmt"

	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/mlmodel"
	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the learned-signal classifier from historical prices",
	Long: `Train fits the logistic classifier used by the learned signal engine.

Input is a CSV of historical close prices (oldest first); the label for
each sample is the sign of the forward return over the horizon. The fitted
model is written as a JSON artifact consumed read-only at the next session
start. The live loop never retrains.

Example:
  papertrader train --data closes.csv --out model.json --horizon 5`,
	RunE: runTrain,
}

var (
	trainData    string
	trainOut     string
	trainHorizon int
	trainEpochs  int
	trainRate    float64
)

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainData, "data", "", "CSV of historical close prices (required)")
	trainCmd.Flags().StringVar(&trainOut, "out", "model.json", "output model artifact path")
	trainCmd.Flags().IntVar(&trainHorizon, "horizon", 5, "forward-return label horizon in samples")
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 200, "gradient descent epochs")
	trainCmd.Flags().Float64Var(&trainRate, "rate", 0.05, "learning rate")
	trainCmd.MarkFlagRequired("data")
}

func runTrain(cmd *cobra.Command, args []string) error {
	closes, err := market.LoadCloses(trainData)
	if err != nil {
		return fmt.Errorf("load training data: %w", err)
	}

	model, err := mlmodel.Train(closes, mlmodel.TrainConfig{
		Horizon: trainHorizon,
		Epochs:  trainEpochs,
		Rate:    trainRate,
	})
	if err != nil {
		return fmt.Errorf("train model: %w", err)
	}

	if err := model.Save(trainOut); err != nil {
		return err
	}

	fmt.Printf("Trained on %d samples (%d closes, horizon %d)\n",
		model.Samples, len(closes), model.Horizon)
	fmt.Printf("Model written to %s\n", trainOut)
	return nil
}
