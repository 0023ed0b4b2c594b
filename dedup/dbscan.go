package dedup

// Noise is the cluster label assigned to points with too few neighbors.
const Noise = -1

// DBSCAN runs density-based clustering over a precomputed, symmetric distance
// matrix. Points i and j are neighbors when dist[i][j] <= eps; a point needs
// at least minPts neighbors (itself included) to seed or extend a cluster.
// Returns one label per point, Noise for unclustered points. Labels are
// assigned in scan order, so the result is deterministic for a fixed matrix.
func DBSCAN(dist [][]float64, eps float64, minPts int) []int {
	n := len(dist)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	visited := make([]bool, n)

	cluster := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(dist, i, eps)
		if len(neighbors) < minPts {
			continue
		}

		labels[i] = cluster
		// Expand the cluster breadth-first; the queue may grow while iterating.
		for k := 0; k < len(neighbors); k++ {
			j := neighbors[k]
			if !visited[j] {
				visited[j] = true
				jNeighbors := regionQuery(dist, j, eps)
				if len(jNeighbors) >= minPts {
					neighbors = append(neighbors, jNeighbors...)
				}
			}
			if labels[j] == Noise {
				labels[j] = cluster
			}
		}
		cluster++
	}

	return labels
}

func regionQuery(dist [][]float64, i int, eps float64) []int {
	var neighbors []int
	for j := range dist[i] {
		if dist[i][j] <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
