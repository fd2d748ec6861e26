package main

import "github.com/JackJJClark/LifeMaxxing-2.0-sub000/cmd/lm/root"

func main() {
	root.Execute()
}
