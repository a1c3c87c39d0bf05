package toposerver

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	gotoolbox "github.com/lab5e/gotoolbox/toolbox"
	"github.com/sirupsen/logrus"

	"github.com/fjordlab/memtopo/pkg/feed"
	"github.com/fjordlab/memtopo/pkg/toolbox"
)

type parameters struct {
	ClusterName string                  `kong:"help='Cluster name',default='memtopo'"`
	Endpoint    string                  `kong:"help='Listen address for the HTTP interface',default='localhost:9998'"`
	NodeID      string                  `kong:"help='Node ID for the server',default=''"`
	ZeroConf    bool                    `kong:"help='Register the server in zeroconf',default='true'"`
	File        feed.FileParameters     `kong:"embed,prefix='file-'"`
	Log         gotoolbox.LogParameters `kong:"embed,prefix='log-'"`
}

// Run is a ready-to-run (just call it from main()) implementation of the
// topology document server. It serves the current document over plain HTTP,
// streams updates over a websocket and accepts new documents by POST or
// from a file on disk.
func Run() {
	var config parameters
	k, err := kong.New(&config, kong.Name("toposerver"),
		kong.Description("Topology document server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: false,
		}))
	if err != nil {
		panic(err)
	}
	if _, err := k.Parse(os.Args[1:]); err != nil {
		k.FatalIfErrorf(err)
		return
	}

	gotoolbox.InitLogs("toposerver", config.Log)
	if config.NodeID == "" {
		config.NodeID = toolbox.RandomID()
	}

	logrus.WithField("nodeId", config.NodeID).Info("Starting topology server")

	srv := newServer()

	if config.File.Path != "" {
		src := feed.NewFileSource(config.File)
		if err := src.Start(srv.publish); err != nil {
			logrus.WithError(err).WithField("file", config.File.Path).Error("Unable to read topology file")
			os.Exit(2)
		}
		defer src.Stop()
	}

	httpServer := &http.Server{
		Addr:              config.Endpoint,
		Handler:           srv.router(),
		ReadHeaderTimeout: time.Second,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("HTTP server stopped")
			os.Exit(2)
		}
	}()

	if config.ZeroConf {
		zr := toolbox.NewZeroconfRegistry(config.ClusterName)
		_, port, err := net.SplitHostPort(config.Endpoint)
		if err != nil {
			logrus.WithError(err).WithField("hostport", config.Endpoint).Error("Host:port string is invalid")
			os.Exit(2)
		}
		portNum, err := strconv.Atoi(port)
		if err != nil {
			logrus.WithError(err).WithField("hostport", config.Endpoint).Error("Host:port string is invalid")
			os.Exit(2)
		}
		if err := zr.Register(feed.ZeroconfTopologyKind, config.NodeID, portNum); err != nil {
			logrus.WithError(err).Error("Unable to register in ZeroConf")
			os.Exit(2)
		}
		defer zr.Shutdown()
	}

	logrus.WithField("endpoint", config.Endpoint).Info("Topology server started")
	gotoolbox.WaitForSignal()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("HTTP server shutdown failed")
	}
}
