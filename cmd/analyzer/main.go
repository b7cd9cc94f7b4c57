// Command analyzer roda a análise de projetos localmente, sem servidor,
// atraso artificial ou histórico.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
