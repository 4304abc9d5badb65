// Package assignment elige a quién asignar trabajo nuevo por menor carga.
package assignment

import "sort"

// PickLeastLoaded retorna el candidato con menor carga; empate → menor ID.
// ok=false si no hay candidatos.
func PickLeastLoaded(candidates []string, load map[string]int) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	c := append([]string(nil), candidates...)
	sort.Strings(c)
	best := c[0]
	for _, id := range c[1:] {
		if load[id] < load[best] {
			best = id
		}
	}
	return best, true
}
