// Command configtool inspects and updates the stored broadcaster config of a
// channel directly, without going through the config frame. Its main use is
// seeding the default title and time range for channels that installed the
// extension before ever opening the config page.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jaedolph/verified-first/internal/config"
	"github.com/jaedolph/verified-first/internal/twitchext"
)

func main() {
	clientID := flag.String("client-id", os.Getenv("VF_CLIENT_ID"), "extension client id")
	clientSecret := flag.String("client-secret", os.Getenv("VF_CLIENT_SECRET"), "API client secret, needed to resolve -channel logins")
	extSecret := flag.String("extension-secret", os.Getenv("VF_EXTENSION_SECRET"), "base64 extension secret")
	channel := flag.String("channel", "", "channel login to update")
	channelID := flag.String("channel-id", "", "channel id, skips the login lookup")
	title := flag.String("title", "", "set the panel title")
	timeRange := flag.String("range", "", "set the time range (month|year|all_time)")
	rewardID := flag.String("reward-id", "", "set the tracked reward id")
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

	rt, err := twitchext.NewRuntime(twitchext.Options{
		ClientID:      *clientID,
		Secret:        *extSecret,
		BroadcasterID: broadcasterID,
	}, clockwork.NewRealClock(), logger)
	if err != nil {
		logger.Fatal("could not create extension runtime", zap.Error(err))
	}

	store := config.NewStore(rt, logger)
	hadConfig := false
	rt.OnConfigChanged(func(content string) {
		if content == "" {
			return
		}
		if err := store.Hydrate(content); err != nil {
			logger.Warn("stored config is malformed, replacing it", zap.Error(err))
			return
		}
		hadConfig = true
	})
	if err := rt.Start(context.Background()); err != nil {
		logger.Fatal("could not read stored config", zap.Error(err))
	}

	var p config.Partial
	if *title != "" {
		p.Title = title
	}
	if *timeRange != "" {
		p.TimeRange = timeRange
	}
	if *rewardID != "" {
		p.RewardID = rewardID
	}

	if p == (config.Partial{}) {
		if hadConfig {
			logger.Info("config already present", zap.String("broadcaster_id", broadcasterID))
			printValues(store.Values())
			return
		}
		defaultTitle := config.DefaultTitle
		defaultRange := config.DefaultTimeRange
		p.Title = &defaultTitle
		p.TimeRange = &defaultRange
		logger.Info("seeding default config", zap.String("broadcaster_id", broadcasterID))
	}

	store.Merge(context.Background(), p)
	printValues(store.Values())
}

func printValues(values config.Values) {
	fmt.Printf("title: %s\nreward: %s\nrange: %s\n", values.Title, values.RewardID, values.TimeRange)
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
