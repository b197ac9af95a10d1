/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import (
	"github.com/josephgoksu/tasklist/cmd"
	"github.com/josephgoksu/tasklist/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
