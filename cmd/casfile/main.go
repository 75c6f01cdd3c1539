// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/casfile/cmd/casfile/cmd"
)

func main() {
	cmd.Execute()
}
