// Package main generates the architecture and component diagrams under docs/.
//
// Run it from the repository root; the .dot files are written to
// docs/go-diagrams/ and can be rendered with graphviz.
package main

import (
	"os"

	"github.com/blushft/go-diagrams/diagram"
	"github.com/blushft/go-diagrams/nodes/generic"
	"github.com/blushft/go-diagrams/nodes/programming"
	log "github.com/sirupsen/logrus"
)

// Rendered files land in go-diagrams/<name>.dot relative to the working directory.
const (
	architectureFile = "architecture"
	componentsFile   = "components"
)

func main() {
	if err := os.MkdirAll("./docs", 0o750); err != nil {
		log.Fatal(err)
	}
	if err := os.Chdir("./docs"); err != nil {
		log.Fatal(err)
	}

	if err := generateArchitectureDiagram(); err != nil {
		log.Fatal(err)
	}
	if err := generateComponentDiagram(); err != nil {
		log.Fatal(err)
	}

	log.Info("Diagrams generated successfully in ./docs/go-diagrams/")
}

// generateArchitectureDiagram draws how the CLI reaches Spotify and the speakers.
func generateArchitectureDiagram() error {
	d, err := diagram.New(diagram.Filename(architectureFile), diagram.Label("spotifyclone Architecture"), diagram.Direction("LR"))
	if err != nil {
		return err
	}

	user := generic.Blank.Blank(diagram.NodeLabel("User"))
	cli := programming.Language.Go(diagram.NodeLabel("spotifyclone CLI"))
	accounts := generic.Blank.Blank(diagram.NodeLabel("Spotify Accounts"))
	webAPI := generic.Blank.Blank(diagram.NodeLabel("Spotify Web API"))
	previews := generic.Blank.Blank(diagram.NodeLabel("Preview CDN"))
	settings := generic.Blank.Blank(diagram.NodeLabel("Settings Store"))
	speakers := generic.Blank.Blank(diagram.NodeLabel("Speakers"))

	d.Connect(user, cli, diagram.Forward())
	d.Connect(cli, accounts, diagram.Forward())
	d.Connect(cli, webAPI, diagram.Forward())
	d.Connect(cli, previews, diagram.Forward())
	d.Connect(cli, settings, diagram.Forward())
	d.Connect(cli, speakers, diagram.Forward())

	return d.Render()
}

// generateComponentDiagram draws the internal packages and their dependencies.
func generateComponentDiagram() error {
	d, err := diagram.New(diagram.Filename(componentsFile), diagram.Label("spotifyclone Components"), diagram.Direction("TB"))
	if err != nil {
		return err
	}

	cmd := programming.Language.Go(diagram.NodeLabel("cmd/spotifyclone"))
	config := programming.Language.Go(diagram.NodeLabel("pkg/config"))
	store := programming.Language.Go(diagram.NodeLabel("internal/store"))
	auth := programming.Language.Go(diagram.NodeLabel("internal/auth"))
	callback := programming.Language.Go(diagram.NodeLabel("internal/callback"))
	client := programming.Language.Go(diagram.NodeLabel("internal/spotify"))
	browse := programming.Language.Go(diagram.NodeLabel("internal/browse"))
	search := programming.Language.Go(diagram.NodeLabel("internal/search"))
	library := programming.Language.Go(diagram.NodeLabel("internal/library"))
	loop := programming.Language.Go(diagram.NodeLabel("internal/mainloop"))
	playback := programming.Language.Go(diagram.NodeLabel("internal/playback"))
	audio := programming.Language.Go(diagram.NodeLabel("internal/audio"))
	ui := programming.Language.Go(diagram.NodeLabel("internal/ui"))

	services := diagram.NewGroup("services").Label("Catalog Services").Add(browse, search, library)
	player := diagram.NewGroup("player").Label("Preview Player").Add(loop, playback, audio, ui)

	d.Connect(cmd, config, diagram.Forward())
	d.Connect(cmd, auth, diagram.Forward())
	d.Connect(cmd, callback, diagram.Forward())
	d.Connect(auth, store, diagram.Forward())
	d.Connect(callback, auth, diagram.Forward())
	d.Connect(client, auth, diagram.Forward())
	d.Connect(browse, client, diagram.Forward())
	d.Connect(search, client, diagram.Forward())
	d.Connect(library, client, diagram.Forward())
	d.Connect(cmd, browse, diagram.Forward())
	d.Connect(cmd, playback, diagram.Forward())
	d.Connect(playback, loop, diagram.Forward())
	d.Connect(audio, playback, diagram.Forward())
	d.Connect(ui, playback, diagram.Forward())
	d.Group(services)
	d.Group(player)

	return d.Render()
}
