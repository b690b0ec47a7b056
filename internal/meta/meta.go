// Package meta holds the reflect.Type bookkeeping FromGoType needs to
// convert Go struct shapes into TypeRefs without infinite-looping on
// self-referential types. It is internal because nothing outside
// routeprobe's own FromGoType convenience should ever construct a
// TypeCache directly.
package meta

import "reflect"

// TypeCache memoizes reflect.Type -> schema-name assignments while a
// recursive lowering pass is in flight, so a struct that refers to
// itself (directly or through a slice/pointer) gets a Ref() back
// instead of looping forever.
type TypeCache struct {
	names map[reflect.Type]string
	seq   int
}

// NewTypeCache creates an empty cache.
func NewTypeCache() *TypeCache {
	return &TypeCache{names: make(map[reflect.Type]string)}
}

// NameFor returns the schema name assigned to t, assigning a new one on
// first sight. alreadySeen reports whether t had already been seen (and is
// therefore mid-recursion, meaning the caller should emit a Ref instead
// of lowering it again).
func (c *TypeCache) NameFor(t reflect.Type) (name string, alreadySeen bool) {
	if n, ok := c.names[t]; ok {
		return n, true
	}
	c.seq++
	name = t.Name()
	if name == "" {
		name = "anon"
	}
	qualified := name
	for _, taken := range c.names {
		if taken == qualified {
			qualified = name + "_" + itoa(c.seq)
			break
		}
	}
	c.names[t] = qualified
	return qualified, false
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
