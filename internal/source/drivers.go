package source

import (
	// Registered database/sql drivers.
	_ "github.com/nakagami/firebirdsql"
	_ "modernc.org/sqlite"
)
