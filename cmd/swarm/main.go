package main

import "github.com/daiallen07/ESP32-Light-Collection-Network/internal/cli"

func main() {
	cli.Execute()
}
