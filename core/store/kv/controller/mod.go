// Package controller implements a CLI initializer that opens the key/value
// database of the node and makes it available to the other initializers.
package controller

import (
	"path/filepath"

	"go.dedis.ch/courier/cli"
	"go.dedis.ch/courier/cli/node"
	"go.dedis.ch/courier/core/store/kv"
	"golang.org/x/xerrors"
)

// DBFile is the name of the database file in the config folder.
const DBFile = "courier.db"

// minimal is an initializer that opens the database when the node starts and
// closes it when it stops.
//
// - implements node.Initializer
type minimal struct{}

// NewMinimal returns a new initializer for the database.
func NewMinimal() node.Initializer {
	return minimal{}
}

// SetCommands implements node.Initializer. The database has no command.
func (m minimal) SetCommands(builder node.Builder) {}

// OnStart implements node.Initializer. It opens the database in the config
// folder and injects it.
func (m minimal) OnStart(flags cli.Flags, inj node.Injector) error {
	db, err := kv.New(filepath.Join(flags.Path(node.ConfigFlag), DBFile))
	if err != nil {
		return xerrors.Errorf("db: %v", err)
	}

	inj.Inject(db)

	return nil
}

// OnStop implements node.Initializer. It closes the database.
func (m minimal) OnStop(inj node.Injector) error {
	var db kv.DB
	err := inj.Resolve(&db)
	if err != nil {
		return xerrors.Errorf("injector: %v", err)
	}

	err = db.Close()
	if err != nil {
		return xerrors.Errorf("while closing db: %v", err)
	}

	return nil
}
