package main

import (
	"os"

	"example.com/app/lang"
)

const group = "auth."

func main() {
	t := &lang.Translator{}
	name := os.Args[0]

	_ = lang.Trans("messages.welcome", lang.Replace{"name": name}, "")
	_ = lang.Trans(group+"failed", nil, "de")
	_ = lang.Trans(name, nil, "")
	_ = lang.TransChoice("apples", 3, nil, "")
	_ = lang.TransChoice("apples", len(os.Args), nil, "")
	_ = t.Get("hello", map[string]string{"name": name, "count": "1"}, "fr")
	_ = t.Choice("apples", uint8(len(os.Args)), nil, "")
	_ = lang.Pairs("hello", "name", name, "count", 2)
	_ = lang.Unrelated("ignored")
}
