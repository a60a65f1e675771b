package cinemachine

// --- helpers ---

// Removes the element at the given index keeping the order.
func removeAt[T any](slice []T, index int) []T {
	// last element: just shrink
	if index == len(slice)-1 {
		var zero T
		slice[index] = zero
		return slice[:index]
	}

	copy(slice[index:], slice[index+1:])
	var zero T
	slice[len(slice)-1] = zero
	return slice[:len(slice)-1]
}
