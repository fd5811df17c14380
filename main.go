/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Emiliocodings/ServiceUsers/cmd"

func main() {
	cmd.Execute()
}
