package utils

import "log"

// SafeGo runs fn in a goroutine, recovering and logging panics.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Recovered panic in goroutine: %v", r)
			}
		}()
		fn()
	}()
}
