// cmd/ledger/main.go

// 本程式提供帳戶開立、存提款、計息、催收與轉帳的指令介面。
// 此檔案負責載入設定、建立 logger，初始化模組（bank, console），
// 並從腳本檔或 stdin 逐行執行指令；收到 SIGINT/SIGTERM 時結束。

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ledger/internal/bank"
	"ledger/internal/config"
	"ledger/internal/console"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if errors.Is(err, config.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 2
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	// 初始化銀行核心模組
	b := bank.NewBank(bank.NewMemoryJournal(), logger.With(zap.String("component", "Bank")))
	c := console.New(b, os.Stdout, logger.With(zap.String("component", "Console")))

	var (
		in     io.Reader = os.Stdin
		prompt           = cfg.Console.Prompt
	)
	if cfg.Console.Script != "" {
		f, err := os.Open(cfg.Console.Script)
		if err != nil {
			logger.Error("Failed to open script", zap.String("path", cfg.Console.Script), zap.Error(err))
			return 2
		}
		defer f.Close()
		in, prompt = f, ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	type result struct {
		sum console.Summary
		err error
	}
	done := make(chan result, 1)
	// 讀取 stdin 會阻塞，因此在背景執行，收到訊號時不必等待下一行輸入。
	go func() {
		sum, err := c.Run(ctx, in, prompt)
		done <- result{sum, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		logger.Info("Shutting down ledger console...")
		return 130
	}
	if res.err != nil && !errors.Is(res.err, context.Canceled) {
		logger.Error("Console stopped", zap.Error(res.err))
		return 1
	}

	logger.Info("Ledger console finished",
		zap.Int("executed", res.sum.Executed),
		zap.Int("failed", res.sum.Failed))
	// 腳本模式下任何指令失敗都以非零狀態結束。
	if cfg.Console.Script != "" && res.sum.Failed > 0 {
		return 1
	}
	return 0
}
