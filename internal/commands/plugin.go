package commands

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/artcc/contribdeck/internal/config"
	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/artcc/contribdeck/internal/deck"
	"github.com/artcc/contribdeck/internal/plugin"
	"github.com/artcc/contribdeck/internal/raster"
	"github.com/artcc/contribdeck/internal/store"
)

const renderRetention = 30 * 24 * time.Hour

// hostFlags are the arguments the host launches the plugin with.
type hostFlags struct {
	port          int
	pluginUUID    string
	registerEvent string
	info          string
}

func parseHostFlags(args []string) (hostFlags, error) {
	var f hostFlags
	fs := flag.NewFlagSet("contribdeck", flag.ContinueOnError)
	fs.IntVar(&f.port, "port", 0, "websocket port of the host")
	fs.StringVar(&f.pluginUUID, "pluginUUID", "", "plugin instance id")
	fs.StringVar(&f.registerEvent, "registerEvent", "", "event used to register")
	fs.StringVar(&f.info, "info", "", "host and device information (JSON)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: contribdeck -port N -pluginUUID ID -registerEvent EVENT [-info JSON]\n")
		fmt.Fprintf(os.Stderr, "       contribdeck render -user NAME [OPTIONS]\n")
		fmt.Fprintf(os.Stderr, "       contribdeck preview [-user NAME] [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Plugin options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return hostFlags{}, err
	}
	if f.port <= 0 || f.pluginUUID == "" || f.registerEvent == "" {
		return hostFlags{}, errors.New("missing -port, -pluginUUID or -registerEvent")
	}
	return f, nil
}

// hostInfo is the part of -info that is worth logging.
type hostInfo struct {
	Application struct {
		Platform string `json:"platform"`
		Version  string `json:"version"`
	} `json:"application"`
	Plugin struct {
		Version string `json:"version"`
	} `json:"plugin"`
	Devices []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"devices"`
}

func parseInfo(s string) (hostInfo, error) {
	var info hostInfo
	if s == "" {
		return info, nil
	}
	if err := json.Unmarshal([]byte(s), &info); err != nil {
		return info, fmt.Errorf("parse -info: %w", err)
	}
	return info, nil
}

// Plugin runs the plugin until the host closes the connection or ctx ends.
func Plugin(ctx context.Context, args []string, cfg config.Config) error {
	flags, err := parseHostFlags(args)
	if err != nil {
		return err
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if info, err := parseInfo(flags.info); err != nil {
		log.WithError(err).Warn("ignoring host info")
	} else {
		log.WithFields(log.Fields{
			"platform": info.Application.Platform,
			"host":     info.Application.Version,
			"plugin":   info.Plugin.Version,
			"devices":  len(info.Devices),
		}).Info("starting")
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Warn("running without a database")
		s = nil
	} else {
		defer s.Close()
		if n, err := s.PruneRenders(time.Now().Add(-renderRetention)); err != nil {
			log.WithError(err).Warn("prune render log")
		} else if n > 0 {
			log.WithField("deleted", n).Debug("pruned render log")
		}
	}

	conn, err := deck.Dial(ctx, flags.port, flags.pluginUUID, flags.registerEvent)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.Debug {
		log.AddHook(&plugin.HostHook{Sender: conn})
	}

	p := plugin.New(plugin.Options{
		Sender:            conn,
		NewFetcher:        plugin.GitHubFetcher(cfg.APIURL),
		Renderer:          contrib.Renderer{Encoder: raster.PNG{}},
		Store:             s,
		RefreshInterval:   cfg.RefreshInterval,
		HeartbeatInterval: cfg.HeartbeatInterval,
		Debug:             cfg.Debug,
	})
	defer p.Close()

	hbCtx, stop := context.WithCancel(ctx)
	defer stop()
	go p.Heartbeat(hbCtx)

	return conn.Run(ctx, p)
}
