package assets

import "embed"

//go:embed balance.yaml
var fs embed.FS

// Balance returns the embedded default balance file. The file is compiled
// into the binary, so a read failure means a broken build; panicking here
// is the right response.
func Balance() []byte {
	b, err := fs.ReadFile("balance.yaml")
	if err != nil {
		panic("assets: embedded balance.yaml missing: " + err.Error())
	}
	return b
}
