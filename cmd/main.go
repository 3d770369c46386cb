package main

import (
	"github.com/defent/order-intake/internal/app"
	"github.com/defent/order-intake/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
