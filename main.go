package main

import "github.com/icrc99-bridge/nft-bridge/cli"

func main() {
	cli.NewRootCommand().Execute()
}
