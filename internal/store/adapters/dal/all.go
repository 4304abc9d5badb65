// Package dal importa todos los adapters para auto-registro.
// Importar este paquete en main.go para habilitar todos los drivers.
//
// Uso:
//
//	import _ "github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/dal"
package dal

import (
	_ "github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/memory"
	_ "github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/pg"
)
