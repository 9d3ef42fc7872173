package main

import "github.com/datum-redsoft/expense-reports/cmd"

func main() {
	cmd.Execute()
}
