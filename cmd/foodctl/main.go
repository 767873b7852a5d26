package main

import (
	"fmt"
	"os"

	"github.com/Skotchmaster/food_api/cmd/foodctl/root"
	_ "github.com/Skotchmaster/food_api/cmd/foodctl/users"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
