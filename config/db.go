package config

import (
	dbm "github.com/tendermint/tm-db"
)

// Names of the databases kept under the db directory.
const (
	LightDBName  = "light"
	PacketDBName = "packets"
)

// DBContext specifies config information for loading a new DB.
type DBContext struct {
	ID     string
	Config *Config
}

// DBProvider takes a DBContext and returns an instantiated DB.
type DBProvider func(*DBContext) (dbm.DB, error)

// DefaultDBProvider returns a database using the DBBackend and DBDir
// specified in the Config. The memdb backend ignores the directory.
func DefaultDBProvider(ctx *DBContext) (dbm.DB, error) {
	backend := dbm.BackendType(ctx.Config.DBBackend)
	if backend == dbm.MemDBBackend {
		return dbm.NewMemDB(), nil
	}
	return dbm.NewDB(ctx.ID, backend, ctx.Config.DBDir())
}
