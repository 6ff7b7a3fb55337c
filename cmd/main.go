package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/crimsonfm/crimson-api/app"
	"github.com/crimsonfm/crimson-api/auth"
	"github.com/crimsonfm/crimson-api/config"
	"github.com/crimsonfm/crimson-api/controller"
	"github.com/crimsonfm/crimson-api/db"
	"github.com/crimsonfm/crimson-api/session"
	"github.com/crimsonfm/crimson-api/spotify"
	"github.com/crimsonfm/crimson-api/store"
	"github.com/crimsonfm/crimson-api/util"
	"github.com/crimsonfm/crimson-api/version"
	"gopkg.in/yaml.v3"
)

func main() {
	v := version.Get()
	bytes, err := yaml.Marshal(v)
	if err != nil {
		log.Panicf("marshal version data: %s", err)
	}
	log.Println("version:\n" + string(bytes))

	var st store.Store
	if config.HasPostgres() {
		err = db.Service().Initialize()
		if err != nil {
			log.Fatalf("initialize database: %s", err)
		}
		pg := store.NewPostgresStore(db.Service().DB)
		if err = pg.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("ensure schema: %s", err)
		}
		st = pg
	} else {
		log.Println("POSTGRES_HOST not set - records live in memory only")
		st = store.NewMemoryStore()
	}

	c := controller.New(
		st,
		session.NewManager(config.GetSessionSecret()),
		spotify.NewTokenManager(st),
		spotify.NewProxy(),
		auth.NewSpotifyFlow(),
	)

	a := app.App{}
	a.Initialize(c)

	addr := "0.0.0.0:5000"
	for _, arg := range os.Args {
		if specifiedAddr, ok := strings.CutPrefix(arg, "--addr="); ok {
			addr = specifiedAddr
		}
	}

	go func() {
		for range time.Tick(time.Second * 30) {
			util.DrainRequestLogs()
		}
	}()

	a.Run(addr)
}
