package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jaedolph/verified-first/internal/config"
	"github.com/jaedolph/verified-first/internal/frame"
	"github.com/jaedolph/verified-first/internal/oauth"
	"github.com/jaedolph/verified-first/internal/twitchext"
)

const defaultEBSURL = "https://verifiedfirst.jaedolph.net"

func main() {
	clientID := flag.String("client-id", os.Getenv("VF_CLIENT_ID"), "extension client id")
	clientSecret := flag.String("client-secret", os.Getenv("VF_CLIENT_SECRET"), "API client secret, needed to resolve -channel logins")
	extSecret := flag.String("extension-secret", os.Getenv("VF_EXTENSION_SECRET"), "base64 extension secret")
	channel := flag.String("channel", "", "channel login to configure")
	channelID := flag.String("channel-id", "", "channel id, skips the login lookup")
	ebsURL := flag.String("ebs-url", defaultEBSURL, "extension backend URL")
	redirectURL := flag.String("redirect-url", defaultEBSURL+"/auth", "backend OAuth redirect target")
	relayAddr := flag.String("relay-addr", "127.0.0.1:0", "listen address for the local authorization page")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger, err := buildLogger(*debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *clientID == "" || *extSecret == "" {
		logger.Fatal("both -client-id and -extension-secret are required")
	}

	broadcasterID := *channelID
	if broadcasterID == "" {
		if *channel == "" {
			logger.Fatal("one of -channel or -channel-id is required")
		}
		if *clientSecret == "" {
			logger.Fatal("-client-secret is required to resolve -channel logins")
		}
		helixClient, err := twitchext.NewHelixClient(*clientID, *clientSecret)
		if err != nil {
			logger.Fatal("could not authenticate with the Twitch API", zap.Error(err))
		}
		broadcasterID, err = twitchext.ResolveChannelID(helixClient, *channel)
		if err != nil {
			logger.Fatal("could not resolve channel", zap.String("channel", *channel), zap.Error(err))
		}
	}

	clock := clockwork.NewRealClock()
	rt, err := twitchext.NewRuntime(twitchext.Options{
		ClientID:      *clientID,
		Secret:        *extSecret,
		BroadcasterID: broadcasterID,
	}, clock, logger)
	if err != nil {
		logger.Fatal("could not create extension runtime", zap.Error(err))
	}

	display := newConsole(os.Stdout)
	opener := oauth.NewRelay(*relayAddr, func(localURL string) {
		display.printf("Open %s in your browser to authorize with Twitch.\n", localURL)
	}, logger)
	cfg := frame.NewConfig(rt, *ebsURL, *redirectURL, opener, display, logger)

	ctx := context.Background()
	if err := rt.Start(ctx); err != nil {
		logger.Fatal("could not start extension runtime", zap.Error(err))
	}

	runShell(ctx, cfg, display)
}

// runShell reads commands from stdin until EOF or quit.
func runShell(ctx context.Context, cfg *frame.Config, display *console) {
	display.printf("Commands: connect, rewards, select <n>, title <text>, range <month|year|all_time>, show, quit\n")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		display.printf("> ")
		if !scanner.Scan() {
			return
		}
		cmd, arg := splitCommand(scanner.Text())

		switch cmd {
		case "":
		case "connect":
			cfg.Connect(ctx)
		case "rewards":
			cfg.Bootstrap(ctx)
		case "select":
			n, err := strconv.Atoi(arg)
			if err != nil {
				display.printf("usage: select <number>\n")
				continue
			}
			reward, ok := display.Reward(n)
			if !ok {
				display.printf("no reward %d, run \"rewards\" first\n", n)
				continue
			}
			if err := cfg.SubmitReward(ctx, reward.ID); err != nil {
				display.printf("could not track %q: %v\n", reward.Title, err)
			}
		case "title":
			if arg == "" {
				display.printf("usage: title <text>\n")
				continue
			}
			cfg.SubmitSettings(ctx, arg, "")
		case "range":
			if !config.ValidTimeRange(arg) {
				display.printf("usage: range <month|year|all_time>\n")
				continue
			}
			cfg.SubmitSettings(ctx, "", arg)
		case "show":
			values := cfg.Store().Values()
			display.printf("title: %s\nreward: %s\nrange: %s\n", values.Title, values.RewardID, values.TimeRange)
		case "quit", "exit":
			return
		default:
			display.printf("unknown command %q\n", cmd)
		}
	}
}

func splitCommand(line string) (cmd, arg string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
