package api

import (
	"yad2watch/app/engine"
	"yad2watch/app/search"
	"yad2watch/app/store"
	"yad2watch/app/tasks"
)

type Handler struct {
	configCache *search.ConfigCache
	seen        *store.SeenStore
	phones      *store.PhoneCache
	eng         *engine.Engine
	scheduler   tasks.TaskSchedulerInterface
}
