package main

import "github.com/Taichi-iskw/yt-search/cmd"

func main() {
	cmd.Execute()
}
