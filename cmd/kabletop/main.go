package main

import (
	"fmt"
	"os"

	"github.com/softprodev/ckb-nft-kabletop/cmd/kabletop/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
