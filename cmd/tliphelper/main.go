package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "tliphelper"}

	root.AddCommand(serveCMD(), askCMD(), indexCMD())
	_ = root.Execute()
}
