package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SketchBoard/internal/share"
	"SketchBoard/internal/state"

	"fyne.io/fyne/v2"
	"github.com/hashicorp/mdns"
	"go.uber.org/zap"
)

// hostSession serves the board to peers and advertises it on the LAN.
func hostSession(s *state.Session, status func(string)) func() {
	hub := share.NewHub(s, logger)
	hub.Dispatch = fyne.Do
	s.OnLocalOp(hub.Publish)

	port := cfg.Share.Port
	if _, err := hub.Listen(fmt.Sprintf(":%d", port)); err != nil {
		logger.Error("share hub", zap.Error(err))
		status(fmt.Sprintf("Sharing failed: %v", err))
		s.OnLocalOp(nil)
		return nil
	}

	var server *mdns.Server
	if cfg.Share.Advertise {
		var err error
		if server, err = share.Advertise(port, logger); err != nil {
			logger.Warn("mdns advertise", zap.Error(err))
		}
	}

	link := share.FormatLink(share.OutgoingIP(), port)
	status("Share link: " + link)
	logger.Info("sharing board", zap.String("link", link))

	return func() {
		s.OnLocalOp(nil)
		if server != nil {
			if err := server.Shutdown(); err != nil {
				logger.Warn("mdns shutdown", zap.Error(err))
			}
		}
		if err := hub.Close(); err != nil {
			logger.Warn("share hub close", zap.Error(err))
		}
	}
}

// joinSession connects the board to a host in the background.
func joinSession(addr string) func(*state.Session, func(string)) func() {
	return func(s *state.Session, status func(string)) func() {
		ctx, cancel := context.WithCancel(context.Background())
		var (
			mu     sync.Mutex
			client *share.Client
			wg     sync.WaitGroup
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := share.Dial(ctx, addr, s, logger)
			if err != nil {
				if ctx.Err() == nil {
					status(fmt.Sprintf("Connection failed: %v", err))
				}
				return
			}
			c.Dispatch = fyne.Do
			mu.Lock()
			client = c
			mu.Unlock()
			s.OnLocalOp(c.Publish)
			status("Connected to " + addr)

			err = c.Run(ctx)
			s.OnLocalOp(nil)
			if err != nil && !errors.Is(err, share.ErrClosed) && ctx.Err() == nil {
				status(fmt.Sprintf("Disconnected from host: %v", err))
			}
		}()

		return func() {
			cancel()
			mu.Lock()
			c := client
			mu.Unlock()
			if c != nil {
				c.Close()
			}
			wg.Wait()
		}
	}
}

// discoverFirst returns the link of the first board that answers on the LAN.
func discoverFirst(timeout time.Duration) (string, error) {
	var (
		mu    sync.Mutex
		first string
	)
	err := share.Browse(timeout, func(link string) {
		mu.Lock()
		defer mu.Unlock()
		if first == "" {
			first = link
		}
	})
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", errors.New("no shared boards found on the LAN")
	}
	return first, nil
}
