package inputs

import (
	_ "github.com/gekatateam/parrot/plugins/inputs/telegram"
)
