package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ai-calculator/internal/modules/calculator/domain"
	"ai-calculator/internal/presentation/di"
)

// newRootCmd ルートコマンドを作成。サブコマンドなしは serve と同じ
func newRootCmd() *cobra.Command {
	return newCommand(runServe)
}

// newCommand serve の実処理を差し替えられるコマンドツリーを作成
func newCommand(serve func(appCfg *AppConfig) error) *cobra.Command {
	appCfg := &AppConfig{}

	rootCmd := &cobra.Command{
		Use:           "ai-calculator",
		Short:         "Calculator that evaluates expressions with Google Gemini",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(appCfg)
		},
	}
	rootCmd.PersistentFlags().StringVar(&appCfg.ConfigPath, "config", defaultConfigPath(), "path to config.yaml")
	rootCmd.Flags().StringVar(&appCfg.Port, "port", defaultPort(), "HTTP listen port")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the calculator web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(appCfg)
		},
	}
	serveCmd.Flags().StringVar(&appCfg.Port, "port", defaultPort(), "HTTP listen port")

	evalCmd := &cobra.Command{
		Use:   "eval <expression...>",
		Short: "Evaluate a single expression and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, appCfg.ConfigPath, strings.Join(args, " "))
		},
	}

	rootCmd.AddCommand(serveCmd, evalCmd)
	return rootCmd
}

func runServe(appCfg *AppConfig) error {
	app, err := NewApp(appCfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	return app.Run()
}

// runEval 式を1回評価して結果を出力。評価に失敗した場合はエラーを返す
func runEval(cmd *cobra.Command, configPath, expression string) error {
	cfg := loadConfig(configPath)
	setupLogger(cfg.Log)

	container, err := di.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize DI container: %w", err)
	}
	defer func() { _ = container.Close() }()

	evaluation, err := container.CalculatorUseCase().Evaluate(context.Background(), expression)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), evaluation.Text())
	if evaluation.Kind != domain.OutcomeOK {
		return errors.New("evaluation failed: " + evaluation.Kind.String())
	}
	return nil
}

// defaultConfigPath ~/.ai-calculator/config.yaml
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".ai-calculator", "config.yaml")
}

// defaultPort 環境変数 PORT、未設定なら 8080
func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}
