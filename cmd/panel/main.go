package main

import (
	"context"
	"flag"
	"os"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jaedolph/verified-first/internal/config"
	"github.com/jaedolph/verified-first/internal/frame"
	"github.com/jaedolph/verified-first/internal/host"
	"github.com/jaedolph/verified-first/internal/twitchext"
)

const defaultEBSURL = "https://verifiedfirst.jaedolph.net"

func main() {
	clientID := flag.String("client-id", os.Getenv("VF_CLIENT_ID"), "extension client id")
	clientSecret := flag.String("client-secret", os.Getenv("VF_CLIENT_SECRET"), "API client secret, needed to resolve -channel logins")
	extSecret := flag.String("extension-secret", os.Getenv("VF_EXTENSION_SECRET"), "base64 extension secret")
	channel := flag.String("channel", "", "channel login to show the leaderboard for")
	channelID := flag.String("channel-id", "", "channel id, skips the login lookup")
	ebsURL := flag.String("ebs-url", defaultEBSURL, "extension backend URL")
	timeRange := flag.String("range", "", "override the configured time range (month|year|all_time)")
	dark := flag.Bool("dark", false, "use the dark theme")
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
	if *timeRange != "" && !config.ValidTimeRange(*timeRange) {
		logger.Fatal("unrecognized -range, use month, year or all_time",
			zap.String("range", *timeRange))
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

	theme := host.ThemeLight
	if *dark {
		theme = host.ThemeDark
	}

	clock := clockwork.NewRealClock()
	rt, err := twitchext.NewRuntime(twitchext.Options{
		ClientID:      *clientID,
		Secret:        *extSecret,
		BroadcasterID: broadcasterID,
		Theme:         theme,
	}, clock, logger)
	if err != nil {
		logger.Fatal("could not create extension runtime", zap.Error(err))
	}

	renderer := newTerminalRenderer(os.Stdout)
	panel := frame.NewPanel(rt, *ebsURL, renderer, clock, logger)

	ctx := context.Background()
	if err := rt.Start(ctx); err != nil {
		logger.Fatal("could not start extension runtime", zap.Error(err))
	}
	if *timeRange != "" {
		panel.ShowRange(ctx, *timeRange)
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
