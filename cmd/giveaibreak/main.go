// Command giveaibreak is the terminal edition of the "help out a tired AI" game.
package main

func main() {
	Execute()
}
