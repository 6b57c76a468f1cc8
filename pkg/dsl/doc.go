/*
Package dsl builds dialogue graphs in Go instead of a YAML flow document.

Guards use the same notation as flow documents, so a graph written with the
builder behaves exactly like its YAML twin:

	b := dsl.New()

	b.Add("start").
		Prompt("what's your name?").
		When("#NAME", "{{NAME}}, what a beautiful name!", "favorite").
		Error("sorry, i didn't catch that.", "start")

	b.Add("favorite").
		Prompt("is sci-fi your favorite genre?").
		When("yes", "me too!", "end").
		Otherwise("fair enough.", "end")

	b.Add("end").
		Prompt("bye!").
		Terminal()

	loader, err := b.Build()
	// ... pass loader to teevee.New(teevee.WithLoader(loader), ...)
*/
package dsl
