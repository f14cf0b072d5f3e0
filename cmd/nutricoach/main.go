// Command nutricoach は栄養コーチングAPIのサーバー、ワーカー、マイグレーション、シードを起動する。
//
//	nutricoach [serve|worker|migrate [up|down]|seed|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/nutricoach/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "nutricoach: %v\n", err)
		os.Exit(1)
	}
}
