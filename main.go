// Copyright © 2018 The Qanun authors

package main

import "github.com/luthersystems/qanun/cmd"

func main() {
	cmd.Execute()
}
