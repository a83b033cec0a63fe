package identity

import "github.com/guessparty/guessparty-go/internal/dependencies/random"

var (
	nicknameAdjectives = []string{"Quick", "Brave", "Clever", "Jolly", "Sneaky"}
	nicknameAnimals    = []string{"Fox", "Lion", "Rabbit", "Hawk", "Bear"}
)

// GenerateNickname produces an adjective+animal starter nickname,
// e.g. "CleverHawk"
func GenerateNickname(rnd random.Random) string {
	adj := nicknameAdjectives[rnd.Intn(len(nicknameAdjectives))]
	animal := nicknameAnimals[rnd.Intn(len(nicknameAnimals))]
	return adj + animal
}
