// Command democontent imports the multilingual demo content and removes it again.
package main

func main() {
	Execute()
}
