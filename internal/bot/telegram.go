package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"copytrader/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type SignalLister interface {
	ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error)
	ListTrades(ctx context.Context, filter domain.TradeFilter) ([]domain.CopiedTrade, error)
}

type NewsReader interface {
	BreakingNews(ctx context.Context) ([]domain.NewsArticle, error)
}

func StartTelegramBot(token string, copyService SignalLister, newsService NewsReader) *AlertDispatcher {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/signals", func(c tele.Context) error {
		if copyService == nil {
			return c.Send("Copy service unavailable")
		}

		filter, err := parseSignalArgs(c.Args())
		if err != nil {
			return c.Send("Usage: /signals EUR/USD | /signals --type BUY | /signals EUR/USD --type SELL")
		}

		signals, err := copyService.ListSignals(context.Background(), filter)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching signals: %v", err))
		}
		if len(signals) == 0 {
			return c.Send("No matching signals right now.")
		}

		lines := make([]string, 0, len(signals)+1)
		lines = append(lines, "Latest signals:")
		for _, s := range signals {
			lines = append(lines, formatSignal(s))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/trades", func(c tele.Context) error {
		if copyService == nil {
			return c.Send("Copy service unavailable")
		}

		filter := domain.TradeFilter{Limit: 5}
		if args := c.Args(); len(args) > 0 {
			filter.AccountID = strings.TrimSpace(args[0])
		}

		trades, err := copyService.ListTrades(context.Background(), filter)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching trades: %v", err))
		}
		if len(trades) == 0 {
			return c.Send("No trades yet.")
		}

		lines := make([]string, 0, len(trades)+1)
		lines = append(lines, "Recent trades:")
		for _, t := range trades {
			lines = append(lines, formatTrade(t))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/news", func(c tele.Context) error {
		if newsService == nil {
			return c.Send("News service unavailable")
		}

		articles, err := newsService.BreakingNews(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching news: %v", err))
		}
		if len(articles) == 0 {
			return c.Send("No breaking news right now.")
		}

		lines := make([]string, 0, len(articles)+1)
		lines = append(lines, "Breaking forex news:")
		for _, a := range articles {
			lines = append(lines, fmt.Sprintf("%s (%s)", a.Title, a.Source))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Trade alerts enabled for this chat.")
			}
			return c.Send("Trade alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Trade alerts disabled for this chat.")
			}
			return c.Send("Trade alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	// Shorthand for /alerts on|off.
	b.Handle("/subscribe", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}
		if alerts.Subscribe(chat.ID) {
			return c.Send("Trade alerts enabled for this chat.")
		}
		return c.Send("Trade alerts are already enabled for this chat.")
	})

	b.Handle("/unsubscribe", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}
		if alerts.Unsubscribe(chat.ID) {
			return c.Send("Trade alerts disabled for this chat.")
		}
		return c.Send("Trade alerts are already disabled for this chat.")
	})

	log.Println("Telegram bot started")
	go b.Start()
	return alerts
}

func parseSignalArgs(args []string) (domain.SignalFilter, error) {
	filter := domain.SignalFilter{Status: domain.SignalActive, Limit: 5}

	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		if arg == "" {
			continue
		}

		if strings.HasPrefix(arg, "--type=") {
			signalType := domain.SignalType(strings.ToUpper(strings.TrimPrefix(arg, "--type=")))
			if !signalType.IsValid() {
				return domain.SignalFilter{}, fmt.Errorf("invalid type")
			}
			filter.Type = signalType
			continue
		}

		if arg == "--type" {
			if i+1 >= len(args) {
				return domain.SignalFilter{}, fmt.Errorf("missing type value")
			}
			i++
			signalType := domain.SignalType(strings.ToUpper(args[i]))
			if !signalType.IsValid() {
				return domain.SignalFilter{}, fmt.Errorf("invalid type")
			}
			filter.Type = signalType
			continue
		}

		if strings.HasPrefix(arg, "--") {
			return domain.SignalFilter{}, fmt.Errorf("unknown option")
		}
		if filter.Pair != "" {
			return domain.SignalFilter{}, fmt.Errorf("multiple pairs provided")
		}
		pair := strings.ToUpper(arg)
		if _, _, ok := domain.SplitPair(pair); !ok {
			return domain.SignalFilter{}, fmt.Errorf("invalid pair")
		}
		filter.Pair = pair
	}

	return filter, nil
}

func formatSignal(s domain.Signal) string {
	var levels []string
	if s.StopLoss != nil {
		levels = append(levels, "SL "+strconv.FormatFloat(*s.StopLoss, 'f', -1, 64))
	}
	if s.TakeProfit != nil {
		levels = append(levels, "TP "+strconv.FormatFloat(*s.TakeProfit, 'f', -1, 64))
	}
	line := fmt.Sprintf("%s %s %s @ %v", s.ID, s.CurrencyPair, s.SignalType, s.EntryPrice)
	if len(levels) > 0 {
		line += " (" + strings.Join(levels, ", ") + ")"
	}
	return line
}

func formatTrade(t domain.CopiedTrade) string {
	return fmt.Sprintf(
		"%s %s %s %.2f lots @ %.5f [%s] %s",
		t.ID,
		t.CurrencyPair,
		t.Direction,
		t.LotSize,
		t.EntryPrice,
		t.Status,
		t.OpenTime.UTC().Format(time.RFC822),
	)
}
