package main

import "github.com/jsphweid/staffgrid/cmd"

func main() {
	cmd.Execute()
}
