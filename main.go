package main

import "fitbuddy-backend/cmd"

func main() {
	cmd.Run()
}
