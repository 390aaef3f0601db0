// OttoHome is a rule-based smart home assistant with a recipe catalog.
//
// Usage:
//
//	ottohome chat            interactive terminal chat
//	ottohome ask TEXT...     answer one or more commands and exit
//	ottohome serve           HTTP and websocket API
package main

func main() {
	Execute()
}
