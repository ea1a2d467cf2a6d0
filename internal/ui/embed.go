package ui

import "embed"

//go:embed templates/*.gohtml
var templatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
