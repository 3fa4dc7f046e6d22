package templates

import "embed"

//go:embed views/*.hbs
var Views embed.FS

const ShowTemplatePath = "views/show.hbs"
