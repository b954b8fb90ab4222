// Command strun is the Strun wallet and account client.
package main

func main() {
	Execute()
}
