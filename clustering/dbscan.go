package clustering

import "github.com/poiesic/assetmatch/core"

type point struct {
	id     core.ContentID
	vector []float32
}

const (
	labelUnvisited = 0
	labelNoise     = -1
)

// dbscan runs a density-based clustering pass over the points using
// distance = 1 - cosine similarity. Returns cluster membership in
// discovery order and the points left unassigned.
func dbscan(points []point, eps float64, minPts int) (clusters [][]core.ContentID, noise []core.ContentID) {
	labels := make([]int, len(points)) // 0 unvisited, -1 noise, >0 cluster number
	nextCluster := 0

	for i := range points {
		if labels[i] != labelUnvisited {
			continue
		}

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPts {
			labels[i] = labelNoise
			continue
		}

		nextCluster++
		expandCluster(points, labels, i, neighbors, nextCluster, eps, minPts)
	}

	clusters = make([][]core.ContentID, nextCluster)
	for i, p := range points {
		switch {
		case labels[i] > 0:
			clusters[labels[i]-1] = append(clusters[labels[i]-1], p.id)
		default:
			noise = append(noise, p.id)
		}
	}
	return clusters, noise
}

// expandCluster grows cluster from the seed point's neighborhood,
// absorbing density-reachable points.
func expandCluster(points []point, labels []int, seed int, neighbors []int, cluster int, eps float64, minPts int) {
	labels[seed] = cluster

	queue := append([]int(nil), neighbors...)
	for head := 0; head < len(queue); head++ {
		idx := queue[head]

		if labels[idx] == labelNoise {
			// Border point: density-reachable but not a core point.
			labels[idx] = cluster
			continue
		}
		if labels[idx] != labelUnvisited {
			continue
		}
		labels[idx] = cluster

		next := regionQuery(points, idx, eps)
		if len(next) >= minPts {
			queue = append(queue, next...)
		}
	}
}

// regionQuery returns the indices of all points within eps of points[idx],
// the point itself included.
func regionQuery(points []point, idx int, eps float64) []int {
	var neighbors []int
	for i := range points {
		distance := 1 - float64(core.CosineSimilarity(points[idx].vector, points[i].vector))
		if distance <= eps {
			neighbors = append(neighbors, i)
		}
	}
	return neighbors
}
