package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/jaedolph/verified-first/internal/ebs"
)

// console implements the config frame's display on a terminal and keeps the
// last reward listing so selections can be made by number.
type console struct {
	outMu sync.Mutex
	out   io.Writer

	mu      sync.Mutex
	rewards []ebs.Reward
}

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

// Reward returns the nth reward of the last listing, one-based.
func (c *console) Reward(n int) (ebs.Reward, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > len(c.rewards) {
		return ebs.Reward{}, false
	}
	return c.rewards[n-1], true
}

func (c *console) ShowConnectPrompt() {
	c.printf("Not connected yet. Run \"connect\" to authorize with Twitch.\n")
}

func (c *console) ShowRewards(rewards []ebs.Reward) {
	c.mu.Lock()
	c.rewards = rewards
	c.mu.Unlock()
	c.printf("Channel point rewards:\n")
	for i, reward := range rewards {
		c.printf("  %d. %s\n", i+1, reward.Title)
	}
	c.printf("Run \"select <number>\" to track a reward.\n")
}

func (c *console) ClearRewards() {
	c.mu.Lock()
	c.rewards = nil
	c.mu.Unlock()
	c.printf("Could not list rewards.\n")
}

func (c *console) AuthPending() {
	c.printf("Waiting for Twitch authorization...\n")
}

func (c *console) AuthSucceeded() {
	c.printf("Twitch account connected.\n")
}

func (c *console) AuthFailed() {
	c.printf("Authorization failed, run \"connect\" to try again.\n")
}

func (c *console) SubscriptionPending() {
	c.printf("Configuring reward tracking...\n")
}

func (c *console) SubscriptionSucceeded() {
	c.printf("Reward tracking configured.\n")
}

func (c *console) SubscriptionFailed() {
	c.printf("Could not configure reward tracking.\n")
}

func (c *console) printf(format string, args ...interface{}) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
