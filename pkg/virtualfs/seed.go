package virtualfs

const (
	aboutText = "Hey, I'm Flivyn, a Systems Integrator apprentice from Germany.\n\n" +
		"This terminal is a fun feature of my portfolio.\n" +
		"Type 'help' to see all available commands."
	contactText = "# Contact Information\n" +
		"- **Email:** [contact@flivyn.dev](mailto:contact@flivyn.dev)\n" +
		"- **GitHub:** [github.com/flivyn](https://github.com/flivyn)\n" +
		"- **Discord:** flivyn"
	projectsText = "This directory contains links to my projects. For now, check out the main portfolio page!"
	snakeText    = "Executable snake game. Type 'snake' to play."
)

// Seed returns a fresh copy of the tree every session starts with.
func Seed() *FS {
	return &FS{root: &Directory{Children: map[string]Node{
		"about.txt":  &File{Content: aboutText},
		"contact.md": &File{Content: contactText},
		"projects": &Directory{Children: map[string]Node{
			"README.md": &File{Content: projectsText},
		}},
		"games": &Directory{Children: map[string]Node{
			"snake": &File{Content: snakeText},
		}},
	}}}
}
