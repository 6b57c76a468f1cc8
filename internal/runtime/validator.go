package runtime

import (
	"fmt"

	"github.com/aretw0/teevee/pkg/domain"
)

// validateExecution checks that a node can be executed at all.
func validateExecution(node *domain.Node) error {
	if node.Terminal && (len(node.Branches) > 0 || node.Next != "") {
		return fmt.Errorf("node %s violation: a terminal node cannot have branches or next", node.ID)
	}
	if node.Next != "" && len(node.Branches) > 0 {
		return fmt.Errorf("node %s violation: cannot have both 'next' and branches", node.ID)
	}
	errorBranches := 0
	for _, b := range node.Branches {
		if b.When.Kind == domain.GuardError {
			errorBranches++
		}
	}
	if errorBranches > 1 {
		return fmt.Errorf("node %s violation: more than one error branch", node.ID)
	}
	return nil
}
