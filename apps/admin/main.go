package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mikobi/darasa/core"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	store := core.NewConfigStore(filepath.Join(core.Getwd(), "config", "backend.yaml"))
	settings, err := store.Load()
	errAndDie(err)
	if settings.URL != "" {
		conf.Database.URL = settings.URL
		conf.Database.Key = settings.Key
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		conf:     conf,
		store:    store,
		validate: validate,
	}

	// freshly saved credentials take effect within the same invocation
	store.OnSave(func(s core.ConnSettings) {
		conf.Database.URL = s.URL
		conf.Database.Key = s.Key
		cli.reset()
	})

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
