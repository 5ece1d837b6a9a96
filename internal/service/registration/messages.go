package registration

import (
	"fmt"
	"strings"
)

const IncompleteReply = "1 or more parts of your entry are missing, please check and enter the registration again."

func successReply(serial int) string {
	return fmt.Sprintf("Entry received for patient with serial number %d. Thank you.", serial)
}

func errorReply(serialToken string, fields []Field) string {
	return fmt.Sprintf("Error for serial %s. There was a mistake in entering %s. "+
		"Please check and enter the whole registration code again.", serialToken, joinFields(fields))
}

func joinFields(fields []Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}
