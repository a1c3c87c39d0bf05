package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"text/tabwriter"
	"time"

	"github.com/aclements/go-moremath/stats"
	"github.com/alecthomas/kong"

	"github.com/fjordlab/memtopo/pkg/feed"
	"github.com/fjordlab/memtopo/pkg/pool"
	"github.com/fjordlab/memtopo/pkg/toolbox"
	"github.com/fjordlab/memtopo/pkg/topo"
	"github.com/fjordlab/memtopo/pkg/transport"
)

// This program routes a batch of synthetic keys through the consistent hash
// ring to show how evenly keys spread across nodes and how many keys move
// when a node is removed. Optionally writes an image with one pixel per key,
// one color per node.

type parameters struct {
	Nodes  int    `kong:"help='Number of nodes in the synthetic topology',default='5'"`
	Keys   int    `kong:"help='Number of keys to route',default='100000'"`
	Points int    `kong:"help='Ring points per node',default='160'"`
	Hash   string `kong:"help='Ring hash algorithm (crc, fnv1a, ketama). Empty for the built-in default'"`
	Image  string `kong:"help='Write a PNG visualising key ownership',type='path'"`
}

var config parameters

var nodeColors = []color.NRGBA{
	{R: 255, G: 0, B: 0, A: 255},   // red
	{R: 0, G: 255, B: 0, A: 255},   // green
	{R: 0, G: 0, B: 255, A: 255},   // blue
	{R: 255, G: 255, B: 0, A: 255}, // yellow
	{R: 0, G: 255, B: 255, A: 255}, // cyan
	{R: 255, G: 0, B: 255, A: 255}, // purple
}

func main() {
	k, err := kong.New(&config, kong.Name("keydist"),
		kong.Description("Key distribution simulator"),
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
	if config.Nodes < 1 || config.Keys < 1 {
		fmt.Fprintln(os.Stderr, "Need at least one node and one key")
		os.Exit(1)
	}

	endpoints := make([]string, config.Nodes)
	for i := range endpoints {
		endpoints[i] = fmt.Sprintf("node%02d:11211", i)
	}

	p := buildPool(config.Nodes)
	defer p.Shutdown()

	// Owner index per key, for the remap comparison and the image
	owners := make([]int, config.Keys)
	counts := make([]int, config.Nodes)
	index := make(map[string]int, config.Nodes)
	for i, ep := range endpoints {
		index[ep] = i
	}

	progress := toolbox.ConsoleProgress{Max: config.Keys}
	elapsed := toolbox.TimeCall(func() {
		for i := 0; i < config.Keys; i++ {
			node, err := p.Locate(keyName(i))
			if err != nil {
				panic(err.Error())
			}
			owner := index[node.Endpoint()]
			owners[i] = owner
			counts[owner]++
			progress.Print(i + 1)
		}
	}, "routing")
	fmt.Printf("Routed %d keys (%.0f keys/sec)\n", config.Keys,
		float64(config.Keys)/elapsed.Seconds())

	table := tabwriter.NewWriter(os.Stdout, 1, 3, 1, ' ', 0)
	table.Write([]byte("Node\tKeys\tPercent\n"))
	xs := make([]float64, config.Nodes)
	for i, ep := range endpoints {
		pct := float64(counts[i]) / float64(config.Keys) * 100.0
		table.Write([]byte(fmt.Sprintf("%s\t%d\t(%3.1f%%)\n", ep, counts[i], pct)))
		xs[i] = float64(counts[i])
	}
	table.Flush()

	sample := &stats.Sample{Xs: xs}
	sample.Sort()
	min, max := sample.Bounds()
	fmt.Printf("\nKeys per node: mean %.1f stddev %.1f median %.0f min %.0f max %.0f\n",
		sample.Mean(), sample.StdDev(), sample.Percentile(0.5), min, max)

	if config.Nodes > 1 {
		printRemap(owners, counts, endpoints)
	}

	if config.Image != "" {
		dumpImage(config.Image, owners)
		fmt.Printf("Wrote %s\n", config.Image)
	}
}

// printRemap routes the same keys over the topology with the last node
// removed and reports how many keys changed owner. The ideal fraction is the
// share of keys the removed node held; every extra move is remap noise.
func printRemap(owners []int, counts []int, endpoints []string) {
	q := buildPool(config.Nodes - 1)
	defer q.Shutdown()

	index := make(map[string]int, len(endpoints))
	for i, ep := range endpoints {
		index[ep] = i
	}

	moved := 0
	for i := 0; i < config.Keys; i++ {
		node, err := q.Locate(keyName(i))
		if err != nil {
			panic(err.Error())
		}
		if index[node.Endpoint()] != owners[i] {
			moved++
		}
	}

	removed := endpoints[config.Nodes-1]
	ideal := float64(counts[config.Nodes-1]) / float64(config.Keys) * 100.0
	fmt.Printf("Removing %s moves %d of %d keys (%3.1f%%, ideal %3.1f%%)\n",
		removed, moved, config.Keys, float64(moved)/float64(config.Keys)*100.0, ideal)
}

func buildPool(nodes int) pool.Pool {
	doc := &topo.Document{Name: "keydist", Revision: 1}
	for i := 0; i < nodes; i++ {
		doc.Nodes = append(doc.Nodes, topo.NodeEntry{
			Hostname: fmt.Sprintf("node%02d", i),
			Status:   topo.StatusHealthy,
			Ports:    topo.Ports{Direct: 11211, Proxy: 11210},
		})
	}

	p := pool.New(pool.Config{
		Name:       "keydist",
		RingPoints: config.Points,
		RingHash:   config.Hash,
		Dialer:     transport.NewNopDialer(),
	}, feed.NewStaticSource(doc))

	ctx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	if err := p.Start(ctx); err != nil {
		panic(err.Error())
	}
	return p
}

func keyName(i int) string {
	return fmt.Sprintf("key-%08d", i)
}

// dumpImage writes one pixel per key, colored by the owning node. Colors
// repeat when the topology has more nodes than the palette.
func dumpImage(name string, owners []int) {
	width := 128
	height := len(owners) / width
	if len(owners)%width > 0 {
		height++
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	keyNo := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if keyNo < len(owners) {
				img.Set(x, y, nodeColors[owners[keyNo]%len(nodeColors)])
			} else {
				img.Set(x, y, color.NRGBA{
					R: 255,
					G: 255,
					B: 255,
					A: 255,
				})
			}
			keyNo++
		}
	}
	f, err := os.Create(name)
	if err != nil {
		panic(err.Error())
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err.Error())
	}
}
