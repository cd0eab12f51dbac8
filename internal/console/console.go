// internal/console/console.go

// Package console 提供逐行指令介面，作為 bank 模組的應用層。
// 每個指令只負責：
//  1. 解析與驗證參數
//  2. 呼叫 bank 層執行商業邏輯
//  3. 輸出結果或帶有錯誤代碼的錯誤訊息
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledger/internal/bank"
)

const usage = `commands:
  open <id> <balance>            open an account ("" generates an id)
  deposit <id> <amount>
  withdraw <id> <amount>         amounts over 20000 must be repeated to confirm
  capitalize <id>
  collect <id>                   collect debt on a negative balance
  transfer <from> <to> <amount>
  show <id>
  list
  logs <id>
  help`

// Console 綁定一個 Bank 與輸出端。
type Console struct {
	bank   *bank.Bank
	out    io.Writer
	logger *zap.Logger
}

// Summary 為一次 Run 的執行統計。
type Summary struct {
	Executed int
	Failed   int
}

type command struct {
	args  int
	usage string
	run   func(c *Console, args []string) error
}

var commands = map[string]command{
	"open":       {2, "open <id> <balance>", (*Console).open},
	"deposit":    {2, "deposit <id> <amount>", (*Console).deposit},
	"withdraw":   {2, "withdraw <id> <amount>", (*Console).withdraw},
	"capitalize": {1, "capitalize <id>", (*Console).capitalize},
	"collect":    {1, "collect <id>", (*Console).collect},
	"transfer":   {3, "transfer <from> <to> <amount>", (*Console).transfer},
	"show":       {1, "show <id>", (*Console).show},
	"list":       {0, "list", (*Console).list},
	"logs":       {1, "logs <id>", (*Console).logs},
	"help":       {0, "help", (*Console).help},
}

// New 建立指令介面；logger 為 nil 時不輸出日誌。
func New(b *bank.Bank, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{bank: b, out: out, logger: logger}
}

// Run 逐行讀取並執行指令，直到輸入結束或 ctx 被取消。
// 空白行與 # 開頭的註解行會被略過；失敗的指令輸出錯誤後繼續執行下一行。
// prompt 非空時在每次讀取前輸出（互動模式）。
func (c *Console) Run(ctx context.Context, in io.Reader, prompt string) (Summary, error) {
	var sum Summary
	sc := bufio.NewScanner(in)
	c.prompt(prompt)
	for {
		// 讀取前檢查 ctx，已讀入的行一定會執行。
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			c.prompt(prompt)
			continue
		}
		sum.Executed++
		if err := c.Execute(line); err != nil {
			sum.Failed++
			c.logger.Debug("command failed", zap.String("line", line), zap.String("code", Code(err)), zap.Error(err))
			fmt.Fprintf(c.out, "error [%s]: %v\n", Code(err), err)
		}
		c.prompt(prompt)
	}
	if err := sc.Err(); err != nil {
		return sum, fmt.Errorf("read commands: %w", err)
	}
	return sum, nil
}

// Execute 執行單一指令列。
func (c *Console) Execute(line string) error {
	args, err := shellquote.Split(line)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if len(args) == 0 {
		return nil
	}
	cmd, ok := commands[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("%w: unknown command %q (try \"help\")", errUsage, args[0])
	}
	if len(args)-1 != cmd.args {
		return fmt.Errorf("%w: %s", errUsage, cmd.usage)
	}
	return cmd.run(c, args[1:])
}

func (c *Console) open(args []string) error {
	balance, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	s, err := c.bank.Open(args[0], balance)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "opened %s\n", formatSnapshot(s))
	return nil
}

func (c *Console) deposit(args []string) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	s, err := c.bank.Deposit(args[0], amount)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, formatSnapshot(s))
	return nil
}

func (c *Console) withdraw(args []string) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	s, debited, err := c.bank.Withdraw(args[0], amount)
	if err != nil {
		return err
	}
	if !debited {
		fmt.Fprintf(c.out, "%s: withdrawal of %s awaits confirmation, repeat it to confirm\n",
			s.ID, formatMoney(amount))
		return nil
	}
	fmt.Fprintln(c.out, formatSnapshot(s))
	return nil
}

func (c *Console) capitalize(args []string) error {
	s, err := c.bank.Capitalize(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, formatSnapshot(s))
	return nil
}

func (c *Console) collect(args []string) error {
	s, err := c.bank.CollectDebt(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, formatSnapshot(s))
	return nil
}

func (c *Console) transfer(args []string) error {
	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	if err := c.bank.Transfer(args[0], args[1], amount); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "transferred %s from %s to %s\n", formatMoney(amount), args[0], args[1])
	return nil
}

func (c *Console) show(args []string) error {
	s, err := c.bank.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, formatSnapshot(s))
	return nil
}

func (c *Console) list(_ []string) error {
	for _, s := range c.bank.List() {
		fmt.Fprintln(c.out, formatSnapshot(s))
	}
	return nil
}

func (c *Console) logs(args []string) error {
	logs, err := c.bank.Logs(args[0])
	if err != nil {
		return err
	}
	for _, l := range logs {
		fmt.Fprintln(c.out, formatLog(l))
	}
	return nil
}

func (c *Console) help(_ []string) error {
	fmt.Fprintln(c.out, usage)
	return nil
}

func (c *Console) prompt(p string) {
	if p != "" {
		fmt.Fprint(c.out, p)
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid amount %q", errUsage, s)
	}
	return v, nil
}
