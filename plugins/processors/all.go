package processors

import (
	_ "github.com/gekatateam/parrot/plugins/processors/admin"
	_ "github.com/gekatateam/parrot/plugins/processors/google"
	_ "github.com/gekatateam/parrot/plugins/processors/gscrape"
	_ "github.com/gekatateam/parrot/plugins/processors/ping"
)
