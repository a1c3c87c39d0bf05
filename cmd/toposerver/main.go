package main

import "github.com/fjordlab/memtopo/pkg/toposerver"

func main() {
	toposerver.Run()
}
